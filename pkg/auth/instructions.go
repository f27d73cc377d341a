package auth

import (
	"fmt"
	"io"
	"strings"
)

// WriteCookieGuide writes the steps for copying a session cookie for host
// out of a browser so it can be saved with "headers set".
func WriteCookieGuide(w io.Writer, host string) {
	if host == "" {
		host = "the site"
	}
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "COPYING REQUEST HEADERS FROM YOUR BROWSER")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "1. Open %s in your browser and log in\n", host)
	fmt.Fprintln(w, "2. Open Developer Tools (F12, or Cmd+Option+I on Mac)")
	fmt.Fprintln(w, "3. Go to the Network tab and refresh the page")
	fmt.Fprintf(w, "4. Click any request to %s and open its Request Headers\n", host)
	fmt.Fprintln(w, "5. Copy the value of the Cookie line (or Authorization, Referer, ...)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Then save it:")
	fmt.Fprintf(w, "   pixelripper headers set %s Cookie\n", strings.TrimPrefix(host, "the site"))
	fmt.Fprintln(w, "   (the value is read without echo when not given on the command line)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "These values grant access to your account. They are kept in the system")
	fmt.Fprintln(w, "keyring or an encrypted file, and sent only to the host they belong to.")
	fmt.Fprintln(w, strings.Repeat("=", 72))
}
