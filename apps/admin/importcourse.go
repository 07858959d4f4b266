package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/identity"
)

// cliActor is the identity of catalog changes made from the command line.
var cliActor = identity.Actor{ID: "admin-cli", Name: "Admin CLI", Role: identity.RoleAdmin}

func readCourse(path string) (catalog.NewCourse, error) {
	f, err := os.Open(path)
	if err != nil {
		return catalog.NewCourse{}, errors.Wrap(err, "opening course document")
	}
	defer f.Close()

	var nc catalog.NewCourse
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(&nc); err != nil {
		return catalog.NewCourse{}, errors.Wrapf(err, "decoding %s", path)
	}
	return nc, nil
}

// importCourse creates the course described by the YAML document at path.
func (cli *commandLine) importCourse(path string) error {
	nc, err := readCourse(path)
	if err != nil {
		return err
	}

	act := cliActor
	course, err := cli.svcs.Catalog.CreateCourse(context.Background(), &act, nc)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "imported %q (%s): %d modules, %d lessons\n",
		course.Slug, course.ID, len(course.Modules), course.TotalLessons())
	return nil
}
