package main

import "github.com/insightdelivered/cashier-report-converter/cmd"

func main() {
	cmd.Execute()
}
