package mail

// Sender delivers transactional mail over SMTP. The concrete host/auth pair
// is picked by EMAIL_SERVICE at startup.
type Sender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type confirmationData struct {
	Position    int
	HasPosition bool
	FrontendURL string
	Year        int
}
