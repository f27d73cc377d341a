// Package storage writes downloaded media into category folders.
//
// Manager derives file names from URLs, avoids overwriting an existing file
// by appending a timestamp to the stem, and writes through a temporary
// ".part" file that is renamed into place once complete. Lock keeps two
// runs from writing the same output tree at once.
package storage
