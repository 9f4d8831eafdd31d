package properties

import (
	"os"
	"path/filepath"
)

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

// ResolvePath joins relative paths onto RootPath; absolute paths are kept.
func ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	root := RootPath()
	if root == "" {
		return path
	}
	return filepath.Join(root, path)
}

type Color struct {
	R, G, B uint8
}

// ColorMap holds the rate classes used when drawing the overview image.
var ColorMap = map[string]Color{
	"erosion":   {202, 0, 32},
	"stable":    {247, 247, 247},
	"accretion": {5, 113, 176},
	"unknown":   {150, 150, 150},
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}

func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}
