package cache

import (
	"context"
	"errors"
	"time"
)

// Pending marks a key whose owner has not stored its result yet.
const Pending = "\x00pending"

// ErrInProgress is returned by Claim while another caller owns the key.
var ErrInProgress = errors.New("cache: key is claimed by a request still in progress")

// Claim reserves key for the caller with SetNX. When the key already holds a
// finished result, that value is returned with owned set to false. The owner
// must either Set its result over the claim or Delete it.
func Claim(ctx context.Context, c Cache, key string, ttl time.Duration) (stored string, owned bool, err error) {
	// Two rounds cover an owner that released the key between SetNX and Get.
	for range 2 {
		ok, err := c.SetNX(ctx, key, Pending, ttl)
		if err != nil {
			return "", false, err
		}
		if ok {
			return "", true, nil
		}
		val, err := c.Get(ctx, key)
		if err != nil {
			return "", false, err
		}
		switch val {
		case "":
			continue
		case Pending:
			return "", false, ErrInProgress
		default:
			return val, false, nil
		}
	}
	return "", false, ErrInProgress
}
