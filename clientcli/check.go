package clientcli

import (
	"context"
	"fmt"
	"time"
)

// DefaultCheckTimeout bounds a single profile authorization check.
const DefaultCheckTimeout = 10 * time.Second

// ProfileCheck is the outcome of authorizing one profile's application key.
type ProfileCheck struct {
	Profile       string `json:"profile"`
	Endpoint      string `json:"endpoint"`
	AccountID     string `json:"account_id,omitempty"`
	APIURL        string `json:"api_url,omitempty"`
	AllowedBucket string `json:"allowed_bucket_id,omitempty"`
	AllowedName   string `json:"allowed_bucket_name,omitempty"`
	Err           error  `json:"-"`
}

// OK reports whether the key authorized and fits the profile's bucket.
func (c ProfileCheck) OK() bool {
	return c.Err == nil
}

// CheckProfile authorizes p against its endpoint. A key restricted to a
// bucket other than the profile's default bucket is reported as a failure.
func CheckProfile(ctx context.Context, p Profile, opts ...Option) ProfileCheck {
	cfg := ConfigFromProfile(&p).WithDefaults()
	check := ProfileCheck{Profile: p.Name, Endpoint: cfg.Endpoint}

	ctx, cancel := context.WithTimeout(ctx, DefaultCheckTimeout)
	defer cancel()

	client, err := New(cfg, append([]Option{WithTimeout(DefaultCheckTimeout)}, opts...)...)
	if err != nil {
		check.Err = err
		return check
	}

	auth, err := client.Authorize(ctx)
	if err != nil {
		check.Err = err
		return check
	}

	check.AccountID = auth.AccountID
	check.APIURL = auth.APIURL
	check.AllowedBucket = auth.Allowed.BucketID
	check.AllowedName = auth.Allowed.BucketName

	if auth.Allowed.BucketID != "" && p.BucketID != "" && auth.Allowed.BucketID != p.BucketID {
		check.Err = fmt.Errorf("key is restricted to bucket %s, profile uses %s", auth.Allowed.BucketID, p.BucketID)
	}
	return check
}

// CheckProfiles runs CheckProfile for each profile in order.
func CheckProfiles(ctx context.Context, profiles []Profile, opts ...Option) []ProfileCheck {
	checks := make([]ProfileCheck, 0, len(profiles))
	for _, p := range profiles {
		checks = append(checks, CheckProfile(ctx, p, opts...))
	}
	return checks
}
