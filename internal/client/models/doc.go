// Package models defines the portal resources the CLI reads and edits:
// credentials, environments, organizations, maintainers and relying parties.
package models
