package utm_test

import (
	"fmt"

	"github.com/atinyakov/utm-manager/internal/utm"
)

func ExampleBuildURL() {
	link, err := utm.BuildURL("example.com/landing?utm_source=old&ref=mail", utm.Params{
		Source:   " news ",
		Campaign: "launch",
	})
	if err != nil {
		panic(err)
	}
	fmt.Println(link)
	// Output: https://example.com/landing?ref=mail&utm_campaign=launch&utm_source=news
}
