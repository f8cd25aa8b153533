package executables

// Spec describes an executable to be spawned: the program, its arguments,
// and the name it will be registered under within its owning cell.
type Spec struct {
	Name        Name
	Command     string
	Args        []string
	Description string
}

// Validate checks the spec's fields in isolation, before any registry
// lookup (duplicate-name checking is the registry's job, not the spec's).
func (s Spec) Validate() error {
	if err := ValidateName(string(s.Name)); err != nil {
		return err
	}
	if s.Command == "" {
		return wrap(KindValidation, string(s.Name), errEmptyCommand)
	}
	return nil
}

var errEmptyCommand = nameErr("executable command must not be empty")
