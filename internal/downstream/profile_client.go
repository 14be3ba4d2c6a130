package downstream

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/resilience"
	profiledomain "github.com/ThalliMega/MiniTikTok-User-Http/internal/profile/domain"
)

type ProfileClient struct {
	caller
}

func NewProfileClient(conn grpc.ClientConnInterface, breaker *resilience.CircuitBreaker) *ProfileClient {
	return &ProfileClient{caller{conn: conn, breaker: breaker}}
}

// GetAttributes returns ok=false when the service has no such user.
func (c *ProfileClient) GetAttributes(ctx context.Context, userID int64) (profiledomain.Attributes, bool, error) {
	req := dynamicpb.NewMessage(UserInfoRequest)
	setInt(req, "user_id", userID)

	resp := dynamicpb.NewMessage(UserInfoResponse)
	if err := c.invoke(ctx, MethodGetUserInfo, req, resp); err != nil {
		return profiledomain.Attributes{}, false, err
	}
	if !getBool(resp, "found") {
		return profiledomain.Attributes{}, false, nil
	}

	return profiledomain.Attributes{
		ID:              getInt(resp, "id"),
		Name:            getString(resp, "username"),
		Avatar:          getString(resp, "avatar"),
		BackgroundImage: getString(resp, "background_image"),
		Signature:       getString(resp, "signature"),
	}, true, nil
}

// GetCount returns ok=false when the counter has no row for the user.
func (c *ProfileClient) GetCount(ctx context.Context, kind profiledomain.CountKind, userID int64) (int64, bool, error) {
	req := dynamicpb.NewMessage(CountRequest)
	// The domain kinds are numbered like the wire enum.
	setEnum(req, "kind", protoreflect.EnumNumber(kind))
	setInt(req, "user_id", userID)

	resp := dynamicpb.NewMessage(CountResponse)
	if err := c.invoke(ctx, MethodGetCount, req, resp); err != nil {
		return 0, false, err
	}
	if !getBool(resp, "found") {
		return 0, false, nil
	}
	return getInt(resp, "count"), true, nil
}

// CheckFollowing returns the subset of targets that self follows.
func (c *ProfileClient) CheckFollowing(ctx context.Context, self int64, targets []int64) ([]int64, error) {
	req := dynamicpb.NewMessage(CheckFollowRequest)
	setInt(req, "self_id", self)
	setInts(req, "target_ids", targets)

	resp := dynamicpb.NewMessage(CheckFollowResponse)
	if err := c.invoke(ctx, MethodCheckFollowing, req, resp); err != nil {
		return nil, err
	}
	return getInts(resp, "followed_ids"), nil
}
