// Package lineio reads and writes newline-delimited text one line at a time.
// It is the on-disk format of sorted runs and of the final sorted output.
//
// End of input is reported through an explicit sentinel rather than an error:
// ReadLine returns ok == false with a nil error once the stream is drained.
//
// Basic usage:
//
//	w := lineio.NewWriter(file)
//	if err := w.WriteLine("hello"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := w.Close(); err != nil {
//	    log.Fatal(err)
//	}
//
//	r := lineio.NewReader(input)
//	for {
//	    line, ok, err := r.ReadLine()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if !ok {
//	        break
//	    }
//	    fmt.Println(line)
//	}
package lineio
