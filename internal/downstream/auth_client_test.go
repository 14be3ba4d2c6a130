package downstream

import (
	"context"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	authdomain "github.com/ThalliMega/MiniTikTok-User-Http/internal/auth/domain"
)

func TestAuthClient_RetrieveToken(t *testing.T) {
	tests := []struct {
		name       string
		wireStatus protoreflect.EnumNumber
		want       authdomain.Status
	}{
		{"success", 1, authdomain.StatusSuccess},
		{"fail", 2, authdomain.StatusFail},
		{"unspecified", 0, authdomain.StatusUnspecified},
		{"unknown value from newer peer", 7, authdomain.StatusUnspecified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser, gotPass string
			fake := startFake(t, map[string]handlerFunc{
				MethodRetrieveToken: func(req *dynamicpb.Message) (*dynamicpb.Message, error) {
					gotUser = getString(req, "username")
					gotPass = getString(req, "password")
					resp := dynamicpb.NewMessage(TokenResponse)
					setEnum(resp, "status_code", tt.wireStatus)
					setString(resp, "token", "tok")
					setInt(resp, "user_id", 42)
					return resp, nil
				},
			})

			reply, err := NewAuthClient(fake.conn, testBreaker()).RetrieveToken(context.Background(), "alice", "secret123")
			if err != nil {
				t.Fatalf("RetrieveToken: %v", err)
			}
			if gotUser != "alice" || gotPass != "secret123" {
				t.Errorf("credentials not forwarded: %q %q", gotUser, gotPass)
			}
			if reply.Status != tt.want {
				t.Errorf("expected status %v, got %v", tt.want, reply.Status)
			}
			if reply.Token != "tok" || reply.UserID != 42 {
				t.Errorf("unexpected reply %+v", reply)
			}
		})
	}
}

func TestAuthClient_ValidateTransportError(t *testing.T) {
	fake := startFake(t, map[string]handlerFunc{
		MethodAuthenticate: func(*dynamicpb.Message) (*dynamicpb.Message, error) {
			return nil, status.Error(codes.Unavailable, "auth down")
		},
	})

	_, err := NewAuthClient(fake.conn, testBreaker()).Validate(context.Background(), "tok")
	if err == nil {
		t.Fatal("expected error")
	}
	if status.Code(err) != codes.Unavailable {
		t.Errorf("expected Unavailable, got %v", status.Code(err))
	}
}

func TestAuthClient_Validate(t *testing.T) {
	fake := startFake(t, map[string]handlerFunc{
		MethodAuthenticate: func(req *dynamicpb.Message) (*dynamicpb.Message, error) {
			resp := dynamicpb.NewMessage(AuthResponse)
			if getString(req, "token") == "good" {
				setEnum(resp, "status_code", 1)
				setInt(resp, "user_id", 7)
			} else {
				setEnum(resp, "status_code", 2)
			}
			return resp, nil
		},
	})
	client := NewAuthClient(fake.conn, testBreaker())

	reply, err := client.Validate(context.Background(), "good")
	if err != nil || reply.Status != authdomain.StatusSuccess || reply.UserID != 7 {
		t.Errorf("expected success for user 7, got %+v %v", reply, err)
	}

	reply, err = client.Validate(context.Background(), "bad")
	if err != nil || reply.Status != authdomain.StatusFail {
		t.Errorf("expected fail, got %+v %v", reply, err)
	}
}
