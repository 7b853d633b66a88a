// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package api

import (
	"fmt"
	"math/rand"
)

// DefaultUserAgent is sent when user agent randomization is off.
const DefaultUserAgent = "Mozilla/5.0 (Linux; Android 13; Pixel 7 Pro) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.6367.82 Mobile Safari/537.36"

var androidDevices = []string{
	"SM-G991B", "SM-S908E", "SM-A536B", "SM-N986B",
	"Pixel 6", "Pixel 7 Pro", "Pixel 8",
	"M2101K6G", "2201116SG", "CPH2451", "RMX3371", "V2202",
}

var androidVersions = []string{"10", "11", "12", "13", "14"}

// RandomAndroidUserAgent returns a Chrome-on-Android UA, the shape a Telegram webview sends.
func RandomAndroidUserAgent() string {
	device := androidDevices[rand.Intn(len(androidDevices))]
	version := androidVersions[rand.Intn(len(androidVersions))]
	major := 110 + rand.Intn(20)
	build := 5000 + rand.Intn(1000)
	patch := rand.Intn(200)

	return fmt.Sprintf(
		"Mozilla/5.0 (Linux; Android %s; %s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.%d.%d Mobile Safari/537.36",
		version, device, major, build, patch,
	)
}
