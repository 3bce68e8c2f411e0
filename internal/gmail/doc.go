// Package gmail wraps the Gmail API for the mail tools: searching,
// reading, drafting, labeling and sending.
package gmail
