package source

import (
	"fmt"
	"log"
	"strings"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// AutoPort asks OpenSerial to pick the first USB serial device that looks
// like a microcontroller board.
const AutoPort = "auto"

// preferredVIDs are USB vendor ids of common boards and USB-serial bridges.
var preferredVIDs = map[string]bool{
	"2341": true, // Arduino
	"2A03": true, // Arduino (older)
	"1A86": true, // CH340
	"10C4": true, // CP210x
	"0403": true, // FTDI
}

// OpenSerial opens a serial device that prints a CSV trace and returns a
// source reading it. The device must send the header line first; OpenSerial
// blocks until it does.
func OpenSerial(port string, baud int) (*CSV, error) {
	if port == AutoPort {
		name, err := autoSelectPort()
		if err != nil {
			return nil, fmt.Errorf("failed auto-selecting serial port: %w", err)
		}
		port = name
	}
	p, err := serial.Open(port, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("failed opening serial port %s: %w", port, err)
	}
	log.Printf("connected to %s @ %d", port, baud)
	c, err := NewCSV(p)
	if err != nil {
		return nil, fmt.Errorf("failed reading from %s: %w", port, err)
	}
	return c, nil
}

func autoSelectPort() (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("enumerate ports: %w", err)
	}
	for _, p := range ports {
		if p.IsUSB && preferredVIDs[strings.ToUpper(p.VID)] {
			return p.Name, nil
		}
	}
	return "", fmt.Errorf("no matching USB serial ports among %d ports", len(ports))
}
