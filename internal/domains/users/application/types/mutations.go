package types

// CreateUserInput carries the fields required to register a user.
type CreateUserInput struct {
	Name  string
	Email string
}

// ReplaceUserInput overwrites every mutable field of an existing user.
type ReplaceUserInput struct {
	ID    int64
	Name  string
	Email string
}

// UpdateUserInput changes only the fields that are set.
type UpdateUserInput struct {
	ID    int64
	Name  *string
	Email *string
}

// Empty reports whether the update carries no fields.
func (in UpdateUserInput) Empty() bool {
	return in.Name == nil && in.Email == nil
}
