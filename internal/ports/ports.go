package ports

// CmdRunner executes a command in a working directory with extra
// environment variables appended to the inherited environment.
type CmdRunner interface {
	Run(dir string, env []string, name string, args ...string) error
}

// Globber expands filesystem patterns into matching paths.
type Globber interface {
	Glob(pattern string) ([]string, error)
}
