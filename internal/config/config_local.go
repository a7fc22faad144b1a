//go:build !gcloud

package config

import "errors"

var ErrCloudTasksUnavailable = errors.New("cloud tasks notification center requires the gcloud build")

func (c *CloudTaskConfig) Validate() error {
	return ErrCloudTasksUnavailable
}
