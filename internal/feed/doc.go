// Package feed fetches RSS and Atom documents and rewrites their title
// elements in place. Everything outside the replaced title text is kept
// byte-for-byte, so the published copy stays as close to the source feed
// as possible.
package feed
