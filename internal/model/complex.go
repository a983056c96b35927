package model

// Complex is a named residential grouping. It is read-only from this
// service's point of view; rows are provisioned out of band.
type Complex struct {
	ID   uint64
	Name string
}
