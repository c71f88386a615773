package env

import (
	"os"
)

// PodName example: k8ssta-minter-6868d88fbd-bz8zv
func PodName() string {
	return os.Getenv("PODNAME")
}

// EnvName example: staging
func EnvName() string {
	return os.Getenv("ENV_NAME")
}

// AppName example: minter
func AppName() string {
	return os.Getenv("APP_NAME")
}

// DeviceID identifies the kiosk the process runs on, falls back to the hostname
func DeviceID() string {
	if id := os.Getenv("DEVICE_ID"); id != "" {
		return id
	}
	host, _ := os.Hostname()
	return host
}
