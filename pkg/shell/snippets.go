package shell

// GetIntegrationSnippet returns the line users add to their shell rc
// file to load the rendered plugin script on startup. Both supported
// shells, zsh and bash, use the same eval form.
func GetIntegrationSnippet(shell string) string {
	return `eval "$(plugman source)"`
}
