package downstream

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Wire schemas of the two services this gateway calls. They are described in
// code so the gateway needs no generated stubs; messages are built with dynamicpb.

const (
	MethodRetrieveToken  = "/auth.AuthService/RetriveToken"
	MethodAuthenticate   = "/auth.AuthService/Auth"
	MethodGetUserInfo    = "/user.UserService/GetUserInfo"
	MethodGetCount       = "/user.UserService/GetCount"
	MethodCheckFollowing = "/user.UserService/CheckFollowing"
)

type field struct {
	name     string
	number   int32
	kind     descriptorpb.FieldDescriptorProto_Type
	typeName string
	repeated bool
}

func message(name string, fields ...field) *descriptorpb.DescriptorProto {
	msg := &descriptorpb.DescriptorProto{Name: proto.String(name)}
	for _, f := range fields {
		label := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
		if f.repeated {
			label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
		}
		fd := &descriptorpb.FieldDescriptorProto{
			Name:     proto.String(f.name),
			Number:   proto.Int32(f.number),
			Label:    label.Enum(),
			Type:     f.kind.Enum(),
		}
		if f.typeName != "" {
			fd.TypeName = proto.String(f.typeName)
		}
		msg.Field = append(msg.Field, fd)
	}
	return msg
}

func enum(name string, values ...string) *descriptorpb.EnumDescriptorProto {
	e := &descriptorpb.EnumDescriptorProto{Name: proto.String(name)}
	for i, v := range values {
		e.Value = append(e.Value, &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(v),
			Number: proto.Int32(int32(i)),
		})
	}
	return e
}

func method(name, in, out string) *descriptorpb.MethodDescriptorProto {
	return &descriptorpb.MethodDescriptorProto{
		Name:       proto.String(name),
		InputType:  proto.String(in),
		OutputType: proto.String(out),
	}
}

const (
	typeString = descriptorpb.FieldDescriptorProto_TYPE_STRING
	typeInt64  = descriptorpb.FieldDescriptorProto_TYPE_INT64
	typeBool   = descriptorpb.FieldDescriptorProto_TYPE_BOOL
	typeEnum   = descriptorpb.FieldDescriptorProto_TYPE_ENUM
)

func authFile() *descriptorpb.FileDescriptorProto {
	tokenResponse := message("TokenResponse",
		field{name: "status_code", number: 1, kind: typeEnum, typeName: ".auth.TokenResponse.TokenStatusCode"},
		field{name: "token", number: 2, kind: typeString},
		field{name: "user_id", number: 3, kind: typeInt64},
	)
	tokenResponse.EnumType = append(tokenResponse.EnumType,
		enum("TokenStatusCode", "UNSPECIFIED", "SUCCESS", "FAIL"))

	authResponse := message("AuthResponse",
		field{name: "status_code", number: 1, kind: typeEnum, typeName: ".auth.AuthResponse.AuthStatusCode"},
		field{name: "user_id", number: 2, kind: typeInt64},
	)
	authResponse.EnumType = append(authResponse.EnumType,
		enum("AuthStatusCode", "UNSPECIFIED", "SUCCESS", "AUTH_FAIL"))

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("auth.proto"),
		Package: proto.String("auth"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			message("TokenRequest",
				field{name: "username", number: 1, kind: typeString},
				field{name: "password", number: 2, kind: typeString},
			),
			tokenResponse,
			message("AuthRequest",
				field{name: "token", number: 1, kind: typeString},
			),
			authResponse,
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("AuthService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("RetriveToken", ".auth.TokenRequest", ".auth.TokenResponse"),
				method("Auth", ".auth.AuthRequest", ".auth.AuthResponse"),
			},
		}},
	}
}

func userFile() *descriptorpb.FileDescriptorProto {
	countRequest := message("CountRequest",
		field{name: "kind", number: 1, kind: typeEnum, typeName: ".user.CountRequest.Kind"},
		field{name: "user_id", number: 2, kind: typeInt64},
	)
	countRequest.EnumType = append(countRequest.EnumType,
		enum("Kind", "KIND_UNSPECIFIED", "FOLLOW", "FOLLOWER", "FAVORITE", "TOTAL_FAVORITED", "WORK"))

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("user.proto"),
		Package: proto.String("user"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			message("UserInfoRequest",
				field{name: "user_id", number: 1, kind: typeInt64},
			),
			message("UserInfoResponse",
				field{name: "found", number: 1, kind: typeBool},
				field{name: "id", number: 2, kind: typeInt64},
				field{name: "username", number: 3, kind: typeString},
				field{name: "avatar", number: 4, kind: typeString},
				field{name: "background_image", number: 5, kind: typeString},
				field{name: "signature", number: 6, kind: typeString},
			),
			countRequest,
			message("CountResponse",
				field{name: "found", number: 1, kind: typeBool},
				field{name: "count", number: 2, kind: typeInt64},
			),
			message("CheckFollowRequest",
				field{name: "self_id", number: 1, kind: typeInt64},
				field{name: "target_ids", number: 2, kind: typeInt64, repeated: true},
			),
			message("CheckFollowResponse",
				field{name: "followed_ids", number: 1, kind: typeInt64, repeated: true},
			),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("UserService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("GetUserInfo", ".user.UserInfoRequest", ".user.UserInfoResponse"),
				method("GetCount", ".user.CountRequest", ".user.CountResponse"),
				method("CheckFollowing", ".user.CheckFollowRequest", ".user.CheckFollowResponse"),
			},
		}},
	}
}

func mustFile(fdp *descriptorpb.FileDescriptorProto) protoreflect.FileDescriptor {
	fd, err := protodesc.NewFile(fdp, nil)
	if err != nil {
		panic(fmt.Sprintf("downstream: invalid schema %s: %v", fdp.GetName(), err))
	}
	return fd
}

var (
	authSchema = mustFile(authFile())
	userSchema = mustFile(userFile())
)

// Message descriptors, exported for test servers.
var (
	TokenRequest        = authSchema.Messages().ByName("TokenRequest")
	TokenResponse       = authSchema.Messages().ByName("TokenResponse")
	AuthRequest         = authSchema.Messages().ByName("AuthRequest")
	AuthResponse        = authSchema.Messages().ByName("AuthResponse")
	UserInfoRequest     = userSchema.Messages().ByName("UserInfoRequest")
	UserInfoResponse    = userSchema.Messages().ByName("UserInfoResponse")
	CountRequest        = userSchema.Messages().ByName("CountRequest")
	CountResponse       = userSchema.Messages().ByName("CountResponse")
	CheckFollowRequest  = userSchema.Messages().ByName("CheckFollowRequest")
	CheckFollowResponse = userSchema.Messages().ByName("CheckFollowResponse")
)

// MethodTypes maps each method to its request and response descriptors.
var MethodTypes = map[string][2]protoreflect.MessageDescriptor{
	MethodRetrieveToken:  {TokenRequest, TokenResponse},
	MethodAuthenticate:   {AuthRequest, AuthResponse},
	MethodGetUserInfo:    {UserInfoRequest, UserInfoResponse},
	MethodGetCount:       {CountRequest, CountResponse},
	MethodCheckFollowing: {CheckFollowRequest, CheckFollowResponse},
}
