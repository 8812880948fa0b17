// Package smarthome is the in-process interface to the Hearth engine.
//
// A Service owns one instance of every registry and wires them together:
//
//	device registry ──events──▶ status aggregator ──▶ MQTT / InfluxDB / store
//	        │                      ▲
//	        ├──events──▶ rule engine ──control──▶ device registry
//	        └──events──▶ room membership, MQTT device state
//
// Services are constructed explicitly and passed by reference; tests build
// as many independent instances as they need over a MemoryGateway.
//
// Usage:
//
//	svc, err := smarthome.New(smarthome.Options{Config: cfg, Gateway: gw, Logger: log})
//	if err != nil {
//	    return err
//	}
//	if err := svc.Initialize(ctx); err != nil {
//	    return err
//	}
//	defer svc.Shutdown(context.Background())
//
//	ok := svc.ControlDevice(ctx, id, "turn_on", nil)
package smarthome
