// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package common

import (
	"math/rand"
	"time"
)

// RandomInt returns a uniform integer in [min, max]. Swapped bounds are tolerated.
func RandomInt(min, max int) int {
	if max < min {
		min, max = max, min
	}
	if max == min {
		return min
	}

	return min + rand.Intn(max-min+1)
}

// JitterSeconds returns a random duration between min and max seconds inclusive.
func JitterSeconds(min, max int) time.Duration {
	return time.Duration(RandomInt(min, max)) * time.Second
}
