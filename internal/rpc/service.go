package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ServiceName = "fixgw.v1.OrderGateway"

	OrderGateway_UnaryCall_FullMethodName    = "/fixgw.v1.OrderGateway/UnaryCall"
	OrderGateway_ServerStream_FullMethodName = "/fixgw.v1.OrderGateway/ServerStream"
	OrderGateway_ClientStream_FullMethodName = "/fixgw.v1.OrderGateway/ClientStream"
	OrderGateway_BidiStream_FullMethodName   = "/fixgw.v1.OrderGateway/BidiStream"
)

// OrderGatewayServer 为服务端需要实现的四个方法。
type OrderGatewayServer interface {
	// UnaryCall 提交单笔订单，立即返回受理或重复结果。
	UnaryCall(context.Context, *OrderRequest) (*OrderResponse, error)
	// ServerStream 按周期推送事件缓存中的新通知。
	ServerStream(*OrderRequest, grpc.ServerStreamingServer[OrderResponse]) error
	// ClientStream 接收一批请求，客户端关闭后返回汇总。
	ClientStream(grpc.ClientStreamingServer[OrderRequest, OrderResponse]) error
	// BidiStream 逐条确认收到的请求。
	BidiStream(grpc.BidiStreamingServer[OrderRequest, OrderResponse]) error
}

// RegisterOrderGatewayServer 将实现注册到 gRPC 服务器。
func RegisterOrderGatewayServer(s grpc.ServiceRegistrar, srv OrderGatewayServer) {
	s.RegisterService(&OrderGateway_ServiceDesc, srv)
}

func _OrderGateway_UnaryCall_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(OrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderGatewayServer).UnaryCall(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: OrderGateway_UnaryCall_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderGatewayServer).UnaryCall(ctx, req.(*OrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderGateway_ServerStream_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(OrderRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(OrderGatewayServer).ServerStream(m, &grpc.GenericServerStream[OrderRequest, OrderResponse]{ServerStream: stream})
}

func _OrderGateway_ClientStream_Handler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(OrderGatewayServer).ClientStream(&grpc.GenericServerStream[OrderRequest, OrderResponse]{ServerStream: stream})
}

func _OrderGateway_BidiStream_Handler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(OrderGatewayServer).BidiStream(&grpc.GenericServerStream[OrderRequest, OrderResponse]{ServerStream: stream})
}

// OrderGateway_ServiceDesc 为手写的服务描述，消息使用 JSON 编解码。
var OrderGateway_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderGatewayServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "UnaryCall",
			Handler:    _OrderGateway_UnaryCall_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "ServerStream",
			Handler:       _OrderGateway_ServerStream_Handler,
			ServerStreams: true,
		},
		{
			StreamName:    "ClientStream",
			Handler:       _OrderGateway_ClientStream_Handler,
			ClientStreams: true,
		},
		{
			StreamName:    "BidiStream",
			Handler:       _OrderGateway_BidiStream_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "fixgw/v1/gateway",
}

// OrderGatewayClient 为客户端存根，所有调用自动使用 JSON 编解码。
type OrderGatewayClient interface {
	UnaryCall(ctx context.Context, in *OrderRequest, opts ...grpc.CallOption) (*OrderResponse, error)
	ServerStream(ctx context.Context, in *OrderRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[OrderResponse], error)
	ClientStream(ctx context.Context, opts ...grpc.CallOption) (grpc.ClientStreamingClient[OrderRequest, OrderResponse], error)
	BidiStream(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[OrderRequest, OrderResponse], error)
}

type orderGatewayClient struct {
	cc grpc.ClientConnInterface
}

// NewOrderGatewayClient 创建客户端存根。
func NewOrderGatewayClient(cc grpc.ClientConnInterface) OrderGatewayClient {
	return &orderGatewayClient{cc: cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *orderGatewayClient) UnaryCall(ctx context.Context, in *OrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	out := new(OrderResponse)
	if err := c.cc.Invoke(ctx, OrderGateway_UnaryCall_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderGatewayClient) ServerStream(ctx context.Context, in *OrderRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[OrderResponse], error) {
	stream, err := c.cc.NewStream(ctx, &OrderGateway_ServiceDesc.Streams[0], OrderGateway_ServerStream_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[OrderRequest, OrderResponse]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *orderGatewayClient) ClientStream(ctx context.Context, opts ...grpc.CallOption) (grpc.ClientStreamingClient[OrderRequest, OrderResponse], error) {
	stream, err := c.cc.NewStream(ctx, &OrderGateway_ServiceDesc.Streams[1], OrderGateway_ClientStream_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[OrderRequest, OrderResponse]{ClientStream: stream}, nil
}

func (c *orderGatewayClient) BidiStream(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[OrderRequest, OrderResponse], error) {
	stream, err := c.cc.NewStream(ctx, &OrderGateway_ServiceDesc.Streams[2], OrderGateway_BidiStream_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[OrderRequest, OrderResponse]{ClientStream: stream}, nil
}
