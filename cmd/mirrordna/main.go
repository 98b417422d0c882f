// SPDX-License-Identifier: Apache-2.0

package main

import "github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/cli"

func main() {
	cli.Execute()
}
