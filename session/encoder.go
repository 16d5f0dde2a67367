package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const (
	snapshotFormatVersionCurrent = 1
)

func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > 255 {
		return errors.New("string field too long")
	}
	buf.WriteByte(byte(len(s)))
	buf.WriteString(s)
	return nil
}

func readString(reader *bytes.Reader) (string, error) {
	n, err := reader.ReadByte()
	if err != nil {
		return "", err
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}

// Encode serializes a snapshot into the compact binary slot format.
func Encode(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(snapshotFormatVersionCurrent)

	for _, field := range []string{
		s.User.ID,
		s.User.Username,
		s.User.DisplayName,
		s.User.Role,
		s.User.Scope,
	} {
		if err := writeString(&buf, field); err != nil {
			return nil, err
		}
	}

	if s.User.Active {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.LastActivity); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode deserializes slot bytes back into a snapshot.
func Decode(data []byte) (*Snapshot, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != snapshotFormatVersionCurrent {
		return nil, errors.New("invalid snapshot version")
	}

	s := &Snapshot{}

	if s.User.ID, err = readString(reader); err != nil {
		return nil, err
	}
	if s.User.Username, err = readString(reader); err != nil {
		return nil, err
	}
	if s.User.DisplayName, err = readString(reader); err != nil {
		return nil, err
	}
	if s.User.Role, err = readString(reader); err != nil {
		return nil, err
	}
	if s.User.Scope, err = readString(reader); err != nil {
		return nil, err
	}

	active, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	s.User.Active = active == 1

	if err := binary.Read(reader, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.LastActivity); err != nil {
		return nil, err
	}

	return s, nil
}
