package mail

import "fmt"

const otpSubject = "Your OTP Verification Code"

// OTPSubject is the subject line for every verification mail.
func OTPSubject() string { return otpSubject }

// OTPBody renders the verification mail body. heading distinguishes the
// first registration mail from a resend.
func OTPBody(heading, code string) string {
	return fmt.Sprintf(`
          <h2>%s</h2>
          <p>Your OTP verification code is: <strong>%s</strong></p>
          <p>This code will expire in 10 minutes.</p>
        `, heading, code)
}
