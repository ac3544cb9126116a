package main

import "github.com/andresmejia3/posecoach/cmd"

func main() {
	cmd.Execute()
}
