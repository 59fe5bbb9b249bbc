package formater

import (
	"strconv"
	"strings"
)

// ThumbnailURL substitutes the size placeholders in a stream's thumbnail
// template URL.
func ThumbnailURL(template string, width, height int) string {
	url := strings.ReplaceAll(template, "{width}", strconv.Itoa(width))
	return strings.ReplaceAll(url, "{height}", strconv.Itoa(height))
}
