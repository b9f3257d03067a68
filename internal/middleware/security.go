// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// SecureHeaders adds security headers to every response. The server only
// ever emits JSON, which trims the set down: no page here is legitimately
// framed, and catalog URLs carry filter parameters that must not leak
// through the Referer header.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		// Prevent the browser from MIME-sniffing the Content-Type.
		h.Set("X-Content-Type-Options", "nosniff")

		// JSON endpoints have no business inside an iframe, own origin
		// included.
		h.Set("X-Frame-Options", "DENY")

		// Keep request URLs (search terms, price filters) out of Referer.
		h.Set("Referrer-Policy", "no-referrer")

		next.ServeHTTP(w, r)
	})
}
