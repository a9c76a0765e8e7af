package main

import "course-checkout-api/cmd"

func main() {
	cmd.Execute()
}
