package config

type NotificationsConfig struct {
	// Detailed sends one embed per reported sutra instead of a single summary.
	Detailed     bool                `koanf:"detailed"`
	SkipEmptyRun bool                `koanf:"skip_empty_run"`
	Service      NotificationService `koanf:"service"`
}

type NotificationService struct {
	// Discord is a webhook URL; empty disables notifications.
	Discord string `koanf:"discord"`
}
