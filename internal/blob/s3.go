package blob

import (
	"context"

	infraS3 "talentcore/internal/infra/blob/s3"
)

// OpenFromEnv constructs an S3 store using environment variables.
func OpenFromEnv(ctx context.Context) (Store, error) {
	return infraS3.OpenFromEnv(ctx)
}
