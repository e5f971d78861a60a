// Package mirror detects "mirror claims": denylist phrases whose presence in
// text triggers the shatter response.
//
// Matching is deliberately loose. Text is NFC-normalised and lowercased, then
// every denylist phrase is tested as a plain substring. Punctuation is not
// stripped and word boundaries are not respected, so a phrase embedded in a
// longer word still matches.
//
// The canned shatter response is static; it never depends on which phrases
// were found.
package mirror
