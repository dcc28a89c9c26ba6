/*
Copyright © 2024 the julesplot authors.
This file is part of julesplot.

julesplot is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

julesplot is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with julesplot.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command julesplot is a command-line interface for plotting JULES land
// surface model output against flux tower observations.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/julesplot/julesplotutil"
)

func main() {
	if err := julesplotutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
