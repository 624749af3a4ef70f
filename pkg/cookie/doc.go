// Package cookie provides HTTP cookie management with optional signing and
// encryption.
//
// The Manager handles plain, signed (HMAC-SHA256), and encrypted (AES-GCM)
// cookies, plus read-once flash messages. A secret is optional; signed and
// encrypted operations return [ErrNoSecret] without one.
//
// Attributes (domain, path, expiry, Secure, HttpOnly, SameSite) are set once
// as manager defaults and may be overridden per cookie, because every write
// operation accepts the same Option funcs:
//
//	m := cookie.New(
//		cookie.WithSecret(secret),
//		cookie.WithSecure(true),
//	)
//	m.Set(w, "theme", "dark", 86400)
//	m.Set(w, "banner", "seen", 60,
//		cookie.WithPath("/promo"),
//		cookie.WithSameSite(http.SameSiteStrictMode),
//	)
//
// Reading follows the same split: Get for plain values, GetSigned for
// tamper-evident values, GetEncrypted for confidential ones. Flash messages
// are encrypted JSON deleted on first read:
//
//	_ = m.SetFlash(w, "notice", "saved")
//	var msg string
//	if err := m.Flash(w, r, "notice", &msg); err == nil {
//		// msg == "saved"; the cookie is gone
//	}
package cookie
