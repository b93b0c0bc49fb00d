package crt

// Dense - Bucket array Collision Resolution Technique, each bucket is a growable array of records
const Dense int = 0

// SeparateChaining - Separate Chaining Collision Resolution Technique, each bucket is a singly linked list
const SeparateChaining int = 1

// LinearProbing - Open Addressing Collision Resolution Technique using linear probing and tombstones
const LinearProbing int = 2

// QuadraticProbing - Open Addressing with quadratic probing, declared but not implemented
const QuadraticProbing int = 3

// Cuckoo - Cuckoo hashing, declared but not implemented
const Cuckoo int = 4

// Name - Returns a printable name of a Collision Resolution Technique
func Name(crtType int) string {
	switch crtType {
	case Dense:
		return "Dense"
	case SeparateChaining:
		return "SeparateChaining"
	case LinearProbing:
		return "LinearProbing"
	case QuadraticProbing:
		return "QuadraticProbing"
	case Cuckoo:
		return "Cuckoo"
	}

	return "Unknown"
}
