package usecase

import "fmt"

// メール本文のテンプレート。プレーンテキストで送信します。

func verificationMailBody(name, url string) string {
	return fmt.Sprintf(`Hello %s,

Welcome to our platform! Please verify your email by clicking the link below:

%s

If you did not create an account, please ignore this email.

Best regards,
The Team`, name, url)
}

func welcomeMailBody(name string) string {
	return fmt.Sprintf(`Hello %s,

Welcome to the platform! We're excited to have you on board. You've successfully registered, and your account is now ready to use.

If you have any questions or need assistance, feel free to reach out to our support team.

Best regards,
The Team`, name)
}

func resendMailBody(name, url string) string {
	return fmt.Sprintf(`Hello %s,

Your previous verification link has expired. Please verify your email by clicking the link below:

%s

If you did not request this, please ignore this email.

Best regards,
The Team`, name, url)
}

func resetMailBody(url string) string {
	return fmt.Sprintf(`Your password reset link is:

%s

If you have not requested this email then, please ignore it.`, url)
}
