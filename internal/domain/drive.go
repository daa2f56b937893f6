package domain

import "strings"

// FolderMimeType marks a Drive item as a folder.
const FolderMimeType = "application/vnd.google-apps.folder"

const workspaceMimePrefix = "application/vnd.google-apps."

// DriveItem is one child of a Drive folder.
type DriveItem struct {
	ID       string
	Name     string
	MimeType string
	Size     int64
}

// IsFolder reports whether the item is a folder to recurse into.
func (i DriveItem) IsFolder() bool {
	return i.MimeType == FolderMimeType
}

// IsWorkspaceDocument reports whether the item is a native Docs/Sheets/etc.
// document (or shortcut) that cannot be fetched as raw bytes.
func (i DriveItem) IsWorkspaceDocument() bool {
	return !i.IsFolder() && strings.HasPrefix(i.MimeType, workspaceMimePrefix)
}

// DriveFolder is a configured Drive folder mirrored into <home>/<Name>.
type DriveFolder struct {
	Name string
	ID   string
}
