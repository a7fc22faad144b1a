package config

import "errors"

func ValidateForRun(cfg *Config) error {
	var errs []error

	// Reminders live in Redis whichever notification center is selected.
	if err := cfg.Redis.Validate(); err != nil {
		errs = append(errs, err)
	}
	if cfg.Notify.Center == NotifyCenterCloudTasks {
		if err := cfg.CloudTask.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.Questions.DBPath == "" {
		errs = append(errs, errors.New("QUESTION_DB_PATH must not be empty"))
	}

	return errors.Join(errs...)
}
