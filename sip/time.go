package sip

import "time"

const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8" standalone="true"?>` + "\n"

func isoNow() string {
	return time.Now().Format("2006-01-02T15:04:05.000000")
}
