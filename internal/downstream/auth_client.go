package downstream

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	authdomain "github.com/ThalliMega/MiniTikTok-User-Http/internal/auth/domain"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/resilience"
)

type AuthClient struct {
	caller
}

func NewAuthClient(conn grpc.ClientConnInterface, breaker *resilience.CircuitBreaker) *AuthClient {
	return &AuthClient{caller{conn: conn, breaker: breaker}}
}

func (c *AuthClient) RetrieveToken(ctx context.Context, username, password string) (authdomain.TokenReply, error) {
	req := dynamicpb.NewMessage(TokenRequest)
	setString(req, "username", username)
	setString(req, "password", password)

	resp := dynamicpb.NewMessage(TokenResponse)
	if err := c.invoke(ctx, MethodRetrieveToken, req, resp); err != nil {
		return authdomain.TokenReply{}, err
	}

	return authdomain.TokenReply{
		Status: statusFromWire(getEnum(resp, "status_code")),
		Token:  getString(resp, "token"),
		UserID: getInt(resp, "user_id"),
	}, nil
}

func (c *AuthClient) Validate(ctx context.Context, token string) (authdomain.ValidateReply, error) {
	req := dynamicpb.NewMessage(AuthRequest)
	setString(req, "token", token)

	resp := dynamicpb.NewMessage(AuthResponse)
	if err := c.invoke(ctx, MethodAuthenticate, req, resp); err != nil {
		return authdomain.ValidateReply{}, err
	}

	return authdomain.ValidateReply{
		Status: statusFromWire(getEnum(resp, "status_code")),
		UserID: getInt(resp, "user_id"),
	}, nil
}

// Both status enums share numbering: 0 unspecified, 1 success, 2 failure.
// Numbers added by a newer peer map to unspecified.
func statusFromWire(n protoreflect.EnumNumber) authdomain.Status {
	switch n {
	case 1:
		return authdomain.StatusSuccess
	case 2:
		return authdomain.StatusFail
	default:
		return authdomain.StatusUnspecified
	}
}

func fieldOf(m *dynamicpb.Message, name string) protoreflect.FieldDescriptor {
	return m.Descriptor().Fields().ByName(protoreflect.Name(name))
}

func setString(m *dynamicpb.Message, name, v string) {
	m.Set(fieldOf(m, name), protoreflect.ValueOfString(v))
}

func setInt(m *dynamicpb.Message, name string, v int64) {
	m.Set(fieldOf(m, name), protoreflect.ValueOfInt64(v))
}

func setEnum(m *dynamicpb.Message, name string, v protoreflect.EnumNumber) {
	m.Set(fieldOf(m, name), protoreflect.ValueOfEnum(v))
}

func setBool(m *dynamicpb.Message, name string, v bool) {
	m.Set(fieldOf(m, name), protoreflect.ValueOfBool(v))
}

func setInts(m *dynamicpb.Message, name string, vs []int64) {
	list := m.Mutable(fieldOf(m, name)).List()
	for _, v := range vs {
		list.Append(protoreflect.ValueOfInt64(v))
	}
}

func getString(m *dynamicpb.Message, name string) string {
	return m.Get(fieldOf(m, name)).String()
}

func getInt(m *dynamicpb.Message, name string) int64 {
	return m.Get(fieldOf(m, name)).Int()
}

func getEnum(m *dynamicpb.Message, name string) protoreflect.EnumNumber {
	return m.Get(fieldOf(m, name)).Enum()
}

func getBool(m *dynamicpb.Message, name string) bool {
	return m.Get(fieldOf(m, name)).Bool()
}

func getInts(m *dynamicpb.Message, name string) []int64 {
	list := m.Get(fieldOf(m, name)).List()
	out := make([]int64, list.Len())
	for i := range out {
		out[i] = list.Get(i).Int()
	}
	return out
}
