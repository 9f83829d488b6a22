// Package layerkey derives deterministic secrets from a master secret and an
// ordered list of layers.
//
// Each layer salts one Argon2id stage whose input is the previous stage's
// output, so the final 32-byte key depends on every layer and on their
// order. The key drives a ChaCha20 keystream from which mnemonic words or
// password characters are drawn by rejection sampling:
//
//	key, err := layerkey.Derive(master, [][]byte{[]byte("example.com"), []byte("2025")}, layerkey.Standard)
//	if err != nil {
//	    return err
//	}
//	defer key.Destroy()
//
//	pw, err := layerkey.GenerateChars(key, 20)
//
// Keys, intermediate stages and generated output live in memguard locked
// buffers and are wiped when destroyed.
package layerkey
