package meta

import (
	"encoding/binary"
	"io/ioutil"
)

// Application contains third party application specific data.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_application
type Application struct {
	// Registered application ID.
	//
	// ref: https://www.xiph.org/flac/id.html
	ID uint32
	// Application data.
	Data []byte
}

// parseApplication reads and parses the body of an Application metadata
// block.
//
func (block *Block) parseApplication() (*Application, error) {
	app := &Application{}
	if err := binary.Read(block.lr, binary.BigEndian, &app.ID); err != nil {
		return nil, err
	}
	data, err := ioutil.ReadAll(block.lr)
	if err != nil {
		return nil, err
	}
	app.Data = data
	return app, nil
}
