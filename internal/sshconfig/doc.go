// Package sshconfig renders the host inventory into SSH client config
// syntax and reconciles it with an existing config file.
//
// sshkm owns exactly one region of the target file, delimited by
// StartMarker and EndMarker. Everything outside that region is treated as
// opaque text and written back byte for byte; the file is never parsed as
// SSH config grammar. Writes go through a temporary file and a rename so a
// reader never sees a partially written config.
package sshconfig
