package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "reviews.v1.ReviewService"

// ReviewServiceServer is the server API. Every message is a
// google.protobuf.Struct so clients in any language can call it with the
// well-known types alone.
type ReviewServiceServer interface {
	OpenSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CloseSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetRating(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PreviewRating(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClearPreview(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateForm(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClearForm(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitReview(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSessionState(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(ReviewServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func method(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ReviewServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ReviewServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ReviewServiceDesc describes the service for grpc.Server.RegisterService.
var ReviewServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReviewServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method("OpenSession", ReviewServiceServer.OpenSession),
		method("CloseSession", ReviewServiceServer.CloseSession),
		method("SetRating", ReviewServiceServer.SetRating),
		method("PreviewRating", ReviewServiceServer.PreviewRating),
		method("ClearPreview", ReviewServiceServer.ClearPreview),
		method("UpdateForm", ReviewServiceServer.UpdateForm),
		method("ClearForm", ReviewServiceServer.ClearForm),
		method("SubmitReview", ReviewServiceServer.SubmitReview),
		method("GetSessionState", ReviewServiceServer.GetSessionState),
		method("GetSummary", ReviewServiceServer.GetSummary),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "reviews/v1/reviews.proto",
}

// RegisterReviewServiceServer registers srv on s.
func RegisterReviewServiceServer(s grpc.ServiceRegistrar, srv ReviewServiceServer) {
	s.RegisterService(&ReviewServiceDesc, srv)
}

// ReviewServiceClient calls ReviewService methods by name.
type ReviewServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewReviewServiceClient(cc grpc.ClientConnInterface) *ReviewServiceClient {
	return &ReviewServiceClient{cc: cc}
}

// Call invokes one method with a Struct request.
func (c *ReviewServiceClient) Call(ctx context.Context, methodName string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+methodName, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
