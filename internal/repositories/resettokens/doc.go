// Package resettokens stores outstanding password-reset tokens under the
// password_reset_tokens key as a JSON object mapping user id to
// {token, expires}, with expires in Unix milliseconds.
package resettokens
