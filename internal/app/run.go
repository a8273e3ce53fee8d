package app

import (
	"fmt"
	"io"
	"log"
	"os"

	fyneapp "fyne.io/fyne/v2/app"
)

const fyneAppID = "com.calebmok.bloodtestanalyser"

// Run initializes required resources and starts the desktop UI.
func Run() error {
	capture := newLogCapture(300)
	logger := log.New(io.MultiWriter(os.Stdout, capture), "", log.LstdFlags)

	svc, err := NewService("", logger)
	if err != nil {
		return fmt.Errorf("init service: %w", err)
	}

	a := fyneapp.NewWithID(fyneAppID)
	u := buildUI(a, svc, capture)
	u.w.ShowAndRun()
	return nil
}
