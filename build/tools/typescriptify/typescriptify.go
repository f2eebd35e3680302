package main

import (
	"fmt"
	"time"

	"github.com/tkrajina/typescriptify-golang-structs/typescriptify"
	"github.com/trezor/cashaddr/api"
	"github.com/trezor/cashaddr/server"
)

func main() {
	t := typescriptify.New()
	t.CreateInterface = true
	t.Indent = "  "
	t.BackupDir = ""

	t.ManageType(time.Time{}, typescriptify.TypeOptions{TSType: "string", TSDoc: "Time in ISO 8601 YYYY-MM-DDTHH:mm:ss.sssZd"})

	// API - REST and Websocket
	t.Add(api.APIError{})
	t.Add(api.Address{})
	t.Add(api.SystemInfo{})

	// Websocket specific
	t.Add(server.WsReq{})
	t.Add(server.WsRes{})
	t.Add(server.WsAddressReq{})
	t.Add(server.WsEncodeAddressReq{})
	t.Add(server.WsPubKeyReq{})
	t.Add(server.WsInfoRes{})

	err := t.ConvertToFile("cashaddr-api.ts")
	if err != nil {
		panic(err.Error())
	}
	fmt.Println("OK")
}
