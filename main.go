package main

import "github.com/bosco250/myUrutiSaluni-sub007/cmd"

func main() {
	cmd.Execute()
}
