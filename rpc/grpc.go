package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ConceptServer is the server API for the Concept gRPC service.
//
// Messages are protobuf well-known types (wrappers for the transaction
// lifecycle, Struct for wire envelopes) so this package does not require a
// protoc/codegen toolchain.
type ConceptServer interface {
	// Open starts a transaction of the named type ("read" or "write") and
	// returns its id.
	Open(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Commit(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	Close(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	Execute(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Stream(*structpb.Struct, Concept_StreamServer) error
}

// UnimplementedConceptServer can be embedded to have forward compatible implementations.
type UnimplementedConceptServer struct{}

func (UnimplementedConceptServer) Open(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Open not implemented")
}
func (UnimplementedConceptServer) Commit(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Commit not implemented")
}
func (UnimplementedConceptServer) Close(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Close not implemented")
}
func (UnimplementedConceptServer) Execute(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Execute not implemented")
}
func (UnimplementedConceptServer) Stream(*structpb.Struct, Concept_StreamServer) error {
	return status.Error(codes.Unimplemented, "method Stream not implemented")
}

// RegisterConceptServer registers the Concept service on a gRPC server.
func RegisterConceptServer(s grpc.ServiceRegistrar, srv ConceptServer) {
	s.RegisterService(&Concept_ServiceDesc, srv)
}

// ConceptClient is the client API for the Concept gRPC service.
type ConceptClient interface {
	Open(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	Commit(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	Close(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	Execute(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Stream(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (Concept_StreamClient, error)
}

const (
	methodOpen    = "/xdao.concept.v1.Concept/Open"
	methodCommit  = "/xdao.concept.v1.Concept/Commit"
	methodClose   = "/xdao.concept.v1.Concept/Close"
	methodExecute = "/xdao.concept.v1.Concept/Execute"
	methodStream  = "/xdao.concept.v1.Concept/Stream"
)

type conceptClient struct{ cc grpc.ClientConnInterface }

func NewConceptClient(cc grpc.ClientConnInterface) ConceptClient { return &conceptClient{cc: cc} }

func (c *conceptClient) Open(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, methodOpen, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *conceptClient) Commit(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, methodCommit, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *conceptClient) Close(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, methodClose, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *conceptClient) Execute(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodExecute, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *conceptClient) Stream(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (Concept_StreamClient, error) {
	stream, err := c.cc.NewStream(ctx, &Concept_ServiceDesc.Streams[0], methodStream, opts...)
	if err != nil {
		return nil, err
	}
	x := &conceptStreamClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// Concept_StreamClient receives the elements of a streaming verb.
type Concept_StreamClient interface {
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

type conceptStreamClient struct {
	grpc.ClientStream
}

func (x *conceptStreamClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Concept_StreamServer sends the elements of a streaming verb.
type Concept_StreamServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type conceptStreamServer struct {
	grpc.ServerStream
}

func (x *conceptStreamServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

func _Concept_Open_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConceptServer).Open(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodOpen}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConceptServer).Open(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Concept_Commit_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConceptServer).Commit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodCommit}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConceptServer).Commit(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Concept_Close_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConceptServer).Close(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodClose}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConceptServer).Close(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Concept_Execute_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConceptServer).Execute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodExecute}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConceptServer).Execute(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _Concept_Stream_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(structpb.Struct)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ConceptServer).Stream(m, &conceptStreamServer{stream})
}

// Concept_ServiceDesc is the grpc.ServiceDesc for the Concept service.
var Concept_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "xdao.concept.v1.Concept",
	HandlerType: (*ConceptServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Open", Handler: _Concept_Open_Handler},
		{MethodName: "Commit", Handler: _Concept_Commit_Handler},
		{MethodName: "Close", Handler: _Concept_Close_Handler},
		{MethodName: "Execute", Handler: _Concept_Execute_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Stream", Handler: _Concept_Stream_Handler, ServerStreams: true},
	},
	Metadata: "concept.proto",
}
