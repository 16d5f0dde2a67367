// Package password provides argon2id hashing with PHC-format encoded
// output. It is the default [authkit] password-hashing capability;
// integrators with an existing hash corpus can substitute their own.
//
// The package never stores or logs plaintext input, and verification
// uses constant-time comparison.
package password
