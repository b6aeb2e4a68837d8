// Package smtp delivers verification codes as localized HTML email over SMTP.
//
// [New] builds a goVerify.Notifier backed by gomail. Message templates exist
// for every locale the engine accepts; unknown locales fall back to English.
//
// # What this package must NOT do
//
//   - Store or log plaintext codes beyond the outgoing message.
//   - Retry delivery — the engine decides how dispatch failure is handled.
package smtp
