package crt

// NoRecordFound - Custom error to inform that no record was found
type NoRecordFound struct {
	msg string
}

// Error - Used to notify that no record was found
func (E NoRecordFound) Error() string {
	if E.msg == "" {
		return "no record found"
	}
	return E.msg
}

// Is - Matches any NoRecordFound regardless of message
func (E NoRecordFound) Is(target error) bool {
	_, ok := target.(NoRecordFound)
	return ok
}

// InvalidArgument - Custom error to inform that an argument was out of its permitted range
type InvalidArgument struct {
	msg string
}

// NewInvalidArgument - Returns an InvalidArgument carrying msg
func NewInvalidArgument(msg string) InvalidArgument {
	return InvalidArgument{msg: msg}
}

// Error - Used to notify that an argument was invalid
func (E InvalidArgument) Error() string {
	if E.msg == "" {
		return "invalid argument"
	}
	return E.msg
}

// Is - Matches any InvalidArgument regardless of message
func (E InvalidArgument) Is(target error) bool {
	_, ok := target.(InvalidArgument)
	return ok
}

// DomainError - Custom error to inform that key length plus value length overflows
type DomainError struct {
	msg string
}

// NewDomainError - Returns a DomainError carrying msg
func NewDomainError(msg string) DomainError {
	return DomainError{msg: msg}
}

// Error - Used to notify that the cell length is not representable
func (E DomainError) Error() string {
	if E.msg == "" {
		return "key length plus value length overflows"
	}
	return E.msg
}

// Is - Matches any DomainError regardless of message
func (E DomainError) Is(target error) bool {
	_, ok := target.(DomainError)
	return ok
}

// OutOfMemory - Custom error to inform that storage could not be allocated
type OutOfMemory struct {
	msg string
}

// NewOutOfMemory - Returns an OutOfMemory carrying msg
func NewOutOfMemory(msg string) OutOfMemory {
	return OutOfMemory{msg: msg}
}

// Error - Used to notify that an allocation failed
func (O OutOfMemory) Error() string {
	if O.msg == "" {
		return "out of memory"
	}
	return O.msg
}

// Is - Matches any OutOfMemory regardless of message
func (O OutOfMemory) Is(target error) bool {
	_, ok := target.(OutOfMemory)
	return ok
}

// CapacityExceeded - Custom error to inform that a dense bucket can't grow any further
type CapacityExceeded struct {
	msg string
}

// NewCapacityExceeded - Returns a CapacityExceeded carrying msg
func NewCapacityExceeded(msg string) CapacityExceeded {
	return CapacityExceeded{msg: msg}
}

// Error - Used to notify an unmanageable collision
func (C CapacityExceeded) Error() string {
	if C.msg == "" {
		return "bucket capacity exceeded"
	}
	return C.msg
}

// Is - Matches any CapacityExceeded regardless of message
func (C CapacityExceeded) Is(target error) bool {
	_, ok := target.(CapacityExceeded)
	return ok
}

// TableFull - Custom error to inform that the slot table is full and can't take more records
type TableFull struct {
	msg string
}

// Error - Used to notify that all probe slots are exhausted
func (T TableFull) Error() string {
	if T.msg == "" {
		return "table full"
	}
	return T.msg
}

// Is - Matches any TableFull regardless of message
func (T TableFull) Is(target error) bool {
	_, ok := target.(TableFull)
	return ok
}

// NotImplemented - Custom error to inform that a declared technique has no implementation
type NotImplemented struct {
	msg string
}

// NewNotImplemented - Returns a NotImplemented carrying msg
func NewNotImplemented(msg string) NotImplemented {
	return NotImplemented{msg: msg}
}

// Error - Used to notify that a technique is not implemented
func (N NotImplemented) Error() string {
	if N.msg == "" {
		return "collision resolution technique not implemented"
	}
	return N.msg
}

// Is - Matches any NotImplemented regardless of message
func (N NotImplemented) Is(target error) bool {
	_, ok := target.(NotImplemented)
	return ok
}

// Freed - Custom error to inform that a hash map has been freed or consumed by a destructive resize
type Freed struct {
	msg string
}

// Error - Used to notify use after free
func (F Freed) Error() string {
	if F.msg == "" {
		return "hash map has been freed"
	}
	return F.msg
}

// Is - Matches any Freed regardless of message
func (F Freed) Is(target error) bool {
	_, ok := target.(Freed)
	return ok
}
