// Package calendar wraps the Google Calendar API for the scheduling
// tools: listing events, finding free slots, and event mutations.
package calendar
