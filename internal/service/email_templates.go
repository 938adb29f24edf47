package service

import "fmt"

func welcomeEmailTemplate(name, notesURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Hi %s,

Your account is ready. Browse notes shared by your classmates or upload your own:
%s

You can turn these emails off at any time in Settings.

Best,
The %s Team`, name, notesURL, appName)

	return subject, body
}

func uploadConfirmationTemplate(name, title, course, noteURL, appName string) (string, string) {
	subject := fmt.Sprintf("Your notes \"%s\" are live on %s", title, appName)
	body := fmt.Sprintf(`Hi %s,

Thanks for sharing! Your notes "%s" for %s are now available to everyone:
%s

You can edit or remove them from your uploads at any time.

Best,
The %s Team`, name, title, course, noteURL, appName)

	return subject, body
}
