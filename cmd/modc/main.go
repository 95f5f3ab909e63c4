package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/boilerworks/supervisor/pkg/modbusclient"
	"github.com/goburrow/modbus"
)

// modc pokes the plant's modbus registers during commissioning: read the
// level and steam sensors, flip a pump coil, inspect the mode register.

var readCount = flag.Uint("read-count", 1, "how many addresses to read")

func main() {
	address := flag.String("addr", "", "tcp modbus address")

	inputreg := flag.Int("inputreg", 0, "input reg, sensors are scale 10")
	discreteInput := flag.Int("discreteinputreg", 0, "discrete input reg")
	holdingreg := flag.Int("holdingreg", 0, "")
	coil := flag.Int("coil", 0, "")

	slaveID := flag.Int("slave", 0, "modbus slave id")
	value := flag.Int("value", 0, "value to write. will write any value")
	flag.Parse()

	handler := modbus.NewTCPClientHandler(*address)
	handler.SlaveId = byte(*slaveID)
	mcli := modbus.NewClient(handler)
	client := &Client{client: mcli}

	var f interface{}
	var err error
	if isFlagPassed("inputreg") {
		f, err = scale10itof(client.readInputRegister(uint16(*inputreg)))
	}
	if isFlagPassed("holdingreg") {
		if isFlagPassed("value") {
			f, err = client.client.WriteSingleRegister(uint16(*holdingreg), uint16(*value))
		} else {
			f, err = client.readHoldingRegister(uint16(*holdingreg))
		}
	}

	if isFlagPassed("coil") {
		if isFlagPassed("value") {
			f, err = client.client.WriteSingleCoil(uint16(*coil), modbusclient.CoilValue(*value != 0))
		} else {
			f, err = client.client.ReadCoils(uint16(*coil), 1)
		}
	}
	if isFlagPassed("discreteinputreg") {
		f, err = client.client.ReadDiscreteInputs(uint16(*discreteInput), 1)
	}

	if err != nil {
		log.Println("error was: ", err)
	}
	if v, ok := f.([]byte); ok {
		fmt.Printf("raw response: %# x (length: %d)\n", v, len(v))
	}
	log.Println("value is: ", f)
	handler.Close()
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func scale10itof(i int, err error) (float64, error) {
	return float64(i) / 10.0, err
}

type Client struct {
	client modbus.Client
}

func (c *Client) readInputRegister(address uint16) (int, error) {
	b, err := c.client.ReadInputRegisters(address, uint16(*readCount))
	fmt.Printf("raw response: %# x (length: %d)\n", b, len(b))
	return modbusclient.Decode(b), err
}

func (c *Client) readHoldingRegister(address uint16) (int, error) {
	b, err := c.client.ReadHoldingRegisters(address, uint16(*readCount))
	fmt.Printf("raw response: %# x (length: %d)\n", b, len(b))
	return modbusclient.Decode(b), err
}
