// Command gatewayctl is a CLI client for the TCP control-plane gateway:
// it places or cancels a single order and prints streamed order/fill
// reports as they arrive.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"strings"

	"backtestcore/internal/gateway"
	"backtestcore/internal/model"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the gateway server")
	action := flag.String("action", "place", "action to perform: 'place' or 'cancel'")

	assetId := flag.Int("asset", 1, "asset id")
	sideStr := flag.String("side", "buy", "order side: 'buy' or 'sell'")
	typeStr := flag.String("type", "limit", "order type: 'limit' or 'market'")
	tifStr := flag.String("tif", "gtc", "time in force: 'gtc', 'ioc', or 'fok'")
	price := flag.Float64("price", 100.0, "limit price")
	qty := flag.Float64("qty", 1.0, "quantity")

	orderId := flag.Uint64("order", 0, "order id to cancel (required for -action cancel)")

	flag.Parse()

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("connected to %s\n", *serverAddr)

	go readReports(conn)

	side := model.Bid
	if strings.ToLower(*sideStr) == "sell" {
		side = model.Ask
	}
	orderType := model.Limit
	if strings.ToLower(*typeStr) == "market" {
		orderType = model.Market
	}
	tif := tifFromString(*tifStr)

	switch strings.ToLower(*action) {
	case "place":
		req := gateway.SubmitOrderRequest{
			AssetId:  *assetId,
			Side:     side,
			Price:    *price,
			Quantity: *qty,
			TIF:      tif,
			Type:     orderType,
		}
		if err := gateway.WriteFrame(conn, gateway.MsgSubmitOrder, req); err != nil {
			log.Fatalf("failed to submit order: %v", err)
		}
		fmt.Printf("-> submitted %s %s asset=%d price=%.8f qty=%.8f\n", *sideStr, *typeStr, *assetId, *price, *qty)
	case "cancel":
		if *orderId == 0 {
			log.Fatal("-order is required for -action cancel")
		}
		req := gateway.CancelOrderRequest{AssetId: *assetId, OrderId: *orderId}
		if err := gateway.WriteFrame(conn, gateway.MsgCancelOrder, req); err != nil {
			log.Fatalf("failed to submit cancel: %v", err)
		}
		fmt.Printf("-> cancel requested for order %d\n", *orderId)
	default:
		log.Fatalf("unknown action: %s", *action)
	}

	fmt.Println("listening for reports... (ctrl+c to exit)")
	select {}
}

func tifFromString(s string) model.TimeInForce {
	switch strings.ToLower(s) {
	case "ioc":
		return model.IOC
	case "fok":
		return model.FOK
	default:
		return model.GTC
	}
}

// readReports drains the connection, printing every streamed
// ack/update/fill/error report until it closes.
func readReports(conn net.Conn) {
	for {
		msgType, body, err := gateway.ReadFrame(conn)
		if err != nil {
			fmt.Printf("connection closed: %v\n", err)
			return
		}
		switch msgType {
		case gateway.MsgOrderAck:
			var ack gateway.OrderAck
			if err := json.Unmarshal(body, &ack); err == nil {
				fmt.Printf("<- ack order=%d\n", ack.OrderId)
			}
		case gateway.MsgOrderUpdate:
			var update model.OrderUpdate
			if err := json.Unmarshal(body, &update); err == nil {
				fmt.Printf("<- %s\n", update)
			}
		case gateway.MsgFill:
			var fill model.Fill
			if err := json.Unmarshal(body, &fill); err == nil {
				fmt.Printf("<- %s\n", fill)
			}
		case gateway.MsgError:
			var report gateway.ErrorReport
			if err := json.Unmarshal(body, &report); err == nil {
				fmt.Printf("<- error: %s\n", report.Message)
			}
		default:
			fmt.Printf("<- unrecognized message type %d\n", msgType)
		}
	}
}
