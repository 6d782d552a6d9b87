// Package source provides the live frame feeds the scanner can poll.
//
// A Camera is opened once, read repeatedly by the session's poll loop and
// closed when the feed stops. New builds one from a source string:
//
//	screen               the primary screen
//	screen:x,y,w,h       a fixed rectangle of the screen
//	dir:<path>           the image files of a directory, in name order
//	device:<n>           video device n (binary built with -tags gocv)
//
// Reads return ErrEndOfStream once a finite feed is exhausted.
package source
