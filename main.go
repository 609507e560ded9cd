package main

import daykcal "github.com/saadjs/daykcal/cmd/daykcal"

func main() {
	daykcal.Execute()
}
