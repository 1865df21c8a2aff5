package domain

// Authority is a named role referenced by accounts. Authorities are seed data;
// nothing in this service creates or deletes them.
type Authority struct {
	Name string
}
